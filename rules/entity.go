package rules

// DefaultSegmentSize is the size of one grid cell.
const DefaultSegmentSize int32 = 20

// Appearance holds the attributes shared by everything that occupies the
// grid. Snake and Prey embed it by value.
type Appearance struct {
	Playable    bool   `json:"playable"`
	FillColor   string `json:"fill_color"`
	BorderColor string `json:"border_color"`
	SegmentSize int32  `json:"segment_size"`
	Zone        Bounds `json:"zone"`
}

func snakeAppearance(zone Bounds) Appearance {
	return Appearance{
		Playable:    true,
		FillColor:   SnakeFillColor,
		BorderColor: SnakeBorderColor,
		SegmentSize: DefaultSegmentSize,
		Zone:        zone,
	}
}

func preyAppearance(zone Bounds, segmentSize int32) Appearance {
	return Appearance{
		FillColor:   PreyColor,
		BorderColor: PreyColor,
		SegmentSize: segmentSize,
		Zone:        zone,
	}
}
