package astro

import "time"

const (
	// NodePeriodDays is the mean retrograde precession period of the lunar
	// nodes (about 18.6 years).
	NodePeriodDays = 6793.5

	// MeanNodeAtJ2000 is the mean north node longitude at J2000.
	MeanNodeAtJ2000 = 125.0445
)

// NodePosition is one lunar node.
type NodePosition struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Position
}

// LunarNodes holds the mean north and south nodes.
// South is always exactly opposite North.
type LunarNodes struct {
	North NodePosition `json:"north_node"`
	South NodePosition `json:"south_node"`
}

// CalculateLunarNodes computes the mean nodes at t.
func CalculateLunarNodes(t time.Time) LunarNodes {
	d := DaysSinceJ2000(t)
	north := Normalize(MeanNodeAtJ2000 - floorMod(d, NodePeriodDays)*(360/NodePeriodDays))
	south := Normalize(north + 180)

	return LunarNodes{
		North: NodePosition{Name: "north_node", Symbol: "☊", Position: NewPosition(north)},
		South: NodePosition{Name: "south_node", Symbol: "☋", Position: NewPosition(south)},
	}
}

// ChartData exposes the nodes as chart entries for aspect scans.
func (n LunarNodes) ChartData() ChartData {
	return ChartData{
		{Body: n.North.Name, Position: n.North.Position},
		{Body: n.South.Name, Position: n.South.Position},
	}
}
