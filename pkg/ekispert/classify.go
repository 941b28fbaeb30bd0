package ekispert

// WalkLineName is the line name the provider gives walking legs.
const WalkLineName = "徒歩"

// Transport labels
const (
	LabelWalk          = "Walk"
	LabelHighwayBus    = "Highway Bus"
	LabelMidnightBus   = "Midnight Express Bus"
	LabelConnectingBus = "Connecting Bus"
	LabelBus           = "Bus"
	LabelPlane         = "Plane"
	LabelShip          = "Ship"
	LabelShinkansen    = "Shinkansen"
	LabelLimitedExp    = "Limited Express"
	LabelSleeperTrain  = "Sleeper Train"
	LabelLiner         = "Liner"
	LabelTrain         = "Train"
	LabelUnknown       = "Unknown"
)

var busLabels = map[string]string{
	"highway":    LabelHighwayBus,
	"midnight":   LabelMidnightBus,
	"connection": LabelConnectingBus,
}

var trainLabels = map[string]string{
	"shinkansen":     LabelShinkansen,
	"limitedExpress": LabelLimitedExp,
	"sleeperTrain":   LabelSleeperTrain,
	"liner":          LabelLiner,
}

// TransportLabel maps a line's type tag and raw name to a human-facing mode.
// Walking is checked first so a walking leg is never labelled by its kind.
// Kinds outside the table come back unchanged.
func TransportLabel(tag TypeTag, lineName string) string {
	switch {
	case tag.Kind == "walk" || lineName == WalkLineName:
		return LabelWalk
	case tag.Kind == "bus":
		if label, ok := busLabels[tag.Detail]; ok {
			return label
		}
		return LabelBus
	case tag.Kind == "plane":
		return LabelPlane
	case tag.Kind == "ship":
		return LabelShip
	case tag.Kind == "train":
		if label, ok := trainLabels[tag.Detail]; ok {
			return label
		}
		return LabelTrain
	case tag.Kind != "":
		return tag.Kind
	}
	return LabelUnknown
}
