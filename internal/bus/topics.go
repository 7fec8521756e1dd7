package bus

// Topics for state-change events. The dashboard subscribes to the firehose
// and fans every event out to its WebSocket clients.
const (
	TopicEventsAll = "events.>"

	TopicAgentUpdated = "events.agent.updated"
	TopicAgentSaved   = "events.agent.saved"

	TopicTaskAdded   = "events.task.added"
	TopicTaskUpdated = "events.task.updated"

	TopicLogAdded   = "events.log.added"
	TopicLogCleared = "events.log.cleared"

	TopicExecutionStarted = "events.execution.started"
	TopicExecutionStopped = "events.execution.stopped"
	TopicExecutionDone    = "events.execution.done"
	TopicExecutionReset   = "events.execution.reset"
)
