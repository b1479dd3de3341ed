package rabbitmq

// Stage names the broker topology for one pipeline stage. Each stage gets its
// own exchange and durable queue; failed messages dead-letter into a shared
// DLX with a stage-specific routing key.
type Stage struct {
	Exchange      string
	Queue         string
	RoutingKey    string
	DLX           string
	DLQ           string
	DLQRoutingKey string
}

var (
	TranscriptionStage = Stage{
		Exchange:      "transcription_exchange",
		Queue:         "transcription_queue",
		RoutingKey:    "transcription.request",
		DLX:           "pipeline_exchange_dlx",
		DLQ:           "transcription_queue_dlq",
		DLQRoutingKey: "dlq.transcription.request",
	}

	DebriefStage = Stage{
		Exchange:      "debrief_exchange",
		Queue:         "debrief_queue",
		RoutingKey:    "debrief.request",
		DLX:           "pipeline_exchange_dlx",
		DLQ:           "debrief_queue_dlq",
		DLQRoutingKey: "dlq.debrief.request",
	}
)
