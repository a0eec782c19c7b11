package usecase

// StageRecorder observes pipeline stages that fell back to their fail-safe
// behavior instead of completing normally. A nil recorder disables recording;
// non-nil implementations must be safe for concurrent use because rerank
// workers may report from multiple goroutines.
type StageRecorder func(stage string)

// Stage labels reported to the recorder. They match the structured log event
// names so dashboards can correlate counters with log lines.
const (
	stageIntentDetect = "intent_detect"
	stageRetrieval    = "lexical_retrieval"
	stageRerank       = "rerank"
	stageScope        = "intent_scope"
	stageHistory      = "history"
	stagePersist      = "persist"
)

func (r StageRecorder) degraded(stage string) {
	if r != nil {
		r(stage)
	}
}
