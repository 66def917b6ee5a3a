package generate

// Stage is a step of one generation.
type Stage int

const (
	StageBuilding Stage = iota
	StageWaiting
	StageCalling
	StageValidating
	StageSaving
	StageDone
)

// Stages lists the steps shown while a generation runs.
var Stages = []Stage{StageBuilding, StageWaiting, StageCalling, StageValidating, StageSaving}

func (s Stage) String() string {
	switch s {
	case StageBuilding:
		return "Building"
	case StageWaiting:
		return "Waiting"
	case StageCalling:
		return "Calling"
	case StageValidating:
		return "Validating"
	case StageSaving:
		return "Saving"
	case StageDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Progress is reported at the start of each stage.
type Progress struct {
	Stage       Stage
	StageIndex  int
	TotalStages int
	Message     string
}

func (s *Service) progress(stage Stage, msg string) {
	if s.onProgress != nil {
		s.onProgress(Progress{
			Stage:       stage,
			StageIndex:  int(stage),
			TotalStages: len(Stages),
			Message:     msg,
		})
	}
}
