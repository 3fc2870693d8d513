package player

// Input is the set of movement controls held this tick.
type Input struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Run     bool
	Crouch  bool
	Jump    bool
}

// axes returns the requested movement in the player's frame: x forward,
// y to the left, each in {-1, 0, 1}.
func (in Input) axes() (x, y float64) {
	if in.Forward {
		x++
	}
	if in.Back {
		x--
	}
	if in.Left {
		y++
	}
	if in.Right {
		y--
	}
	return x, y
}
