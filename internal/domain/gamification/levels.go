package gamification

// Level is a named tier reached at MinPoints.
type Level struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
}

// Levels are ordered by ascending MinPoints. The first starts at zero.
var Levels = []Level{
	{"Beginner", 0},
	{"Intermediate", 100},
	{"Advanced", 500},
	{"Expert", 1000},
	{"Master", 2500},
	{"Legend", 5000},
	{"Mythic", 7500},
	{"Supreme", 10000},
	{"Ultimate", 25000},
	{"Godlike", 50000},
	{"Master of Knowledge", 750000},
	{"The Ultimate Student", 1000000},
}

// LevelFor returns the highest level whose threshold points has reached.
func LevelFor(points int) Level {
	current := Levels[0]
	for _, l := range Levels {
		if points >= l.MinPoints {
			current = l
		}
	}
	return current
}

// NextLevel returns the level after the one points has reached and whether
// there is one.
func NextLevel(points int) (Level, bool) {
	for _, l := range Levels {
		if l.MinPoints > points {
			return l, true
		}
	}
	return Level{}, false
}
