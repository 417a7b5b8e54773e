package smoketest

// Dashboard shape.
const (
	DashboardPanels = 7
)

// Generator defaults.
const (
	DefaultPlayers     = 24
	DefaultSeasons     = 3
	DefaultFirstSeason = 2021
	DefaultMaxHomeruns = 12
	DefaultVideoBase   = "https://videos.homerun.example/"
)

// Per-event value ranges.
const (
	minExitVelocity   = 40.0
	exitVelocitySpan  = 12.0
	minHitDistance    = 110.0
	hitDistanceSpan   = 45.0
	minLaunchAngle    = 18.0
	launchAngleSpan   = 22.0
	powerDivisor      = 1000.0
	decimalsPerValue  = 2
	directoryPerm     = 0o750
	percentMultiplier = 100
)
