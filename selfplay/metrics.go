package selfplay

// Metrics is the per-cycle record exposed by the core: cycle index,
// games played, W/D/L counts, average ply length, mean loss, mean
// gradient norm, buffer size, epsilon.
type Metrics struct {
	Cycle        int
	GamesPlayed  int
	Wins         int
	Draws        int
	Losses       int
	AveragePlies float64
	MeanLoss     float64
	MeanGradNorm float64
	BufferSize   int
	Epsilon      float64
	UpdatesRun   int
}
