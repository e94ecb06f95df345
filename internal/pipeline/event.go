package pipeline

// Stage is the progress state of one file task.
type Stage uint8

const (
	StageQueued Stage = iota
	StageDetect
	StageAnalyze
	StageScore
	StageConvert
	StageDone
	StageSkipped
	StageFailed
)

var stageNames = [...]string{"queued", "detect", "analyze", "score", "convert", "done", "skipped", "error"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further events follow for the file.
func (s Stage) Terminal() bool {
	return s >= StageDone
}

// Event is a progress notification for one file.
type Event struct {
	Index    int // position in the input
	Total    int
	Path     string
	Stage    Stage
	Accuracy float64 // set with StageDone
}

// ProgressSink receives events from concurrent tasks; Publish must be safe
// for concurrent use.
type ProgressSink interface {
	Publish(Event)
}

// ChannelSink forwards events to a channel. The consumer must keep draining
// it until Run returns; the channel is never closed by the pipeline.
type ChannelSink chan<- Event

func (s ChannelSink) Publish(ev Event) { s <- ev }

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }
