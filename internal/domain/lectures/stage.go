package lectures

type Stage string

const (
	StageUploaded         Stage = "uploaded"
	StageDownloading      Stage = "downloading"
	StageExtractingAudio  Stage = "extracting_audio"
	StageTranscribing     Stage = "transcribing"
	StageSummarizing      Stage = "summarizing"
	StageExtractingSlides Stage = "extracting_slides"
	StageComplete         Stage = "complete"
	StageFailed           Stage = "failed"
)

var stageRank = map[Stage]int{
	StageUploaded:         0,
	StageDownloading:      1,
	StageExtractingAudio:  2,
	StageTranscribing:     3,
	StageSummarizing:      4,
	StageExtractingSlides: 5,
	StageComplete:         6,
}

func (s Stage) Valid() bool {
	_, ok := stageRank[s]
	return ok || s == StageFailed
}

func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// CanTransition reports whether a lecture may move from one stage to another.
// Stages advance one step at a time; downloading is skipped for local files;
// failed is reachable from every non-terminal stage; terminal stages never move.
func CanTransition(from, to Stage) bool {
	if from.Terminal() || !from.Valid() || !to.Valid() {
		return false
	}
	if to == StageFailed {
		return true
	}
	if from == StageUploaded && to == StageExtractingAudio {
		return true
	}
	return stageRank[to] == stageRank[from]+1
}

// JobLectureProcess is the worker job type that runs a lecture end to end.
const JobLectureProcess = "lecture_process"
