package fiberx

// Task is the unit of work a Scheduler runs. It is opaque to the
// scheduler beyond Run.
type Task interface {
	Run()
}

// Scheduler is the runtime's only dependency on the outside world.
// Submit must not panic — every fiber-scheduling call site relies on
// that contract; scheduler.SafeScheduler wraps any Scheduler to enforce
// it defensively.
type Scheduler interface {
	Submit(Task)
}

// TaskBase is embedded by task implementations that need to live on an
// intrusive queue. Fiber embeds it.
type TaskBase struct {
	intrusiveNode[TaskBase]
}
