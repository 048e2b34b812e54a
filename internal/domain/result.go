package domain

// Result is the verdict of one verification step as reported to the scheduler.
type Result int

const (
	// ResultOK means the service behaved correctly and, for flag checks, the
	// expected flag was recovered.
	ResultOK Result = iota
	// ResultNotWorking means the service is behaviorally broken.
	ResultNotWorking
	// ResultNotFound means expected prior state is absent or unverifiable,
	// which is not necessarily a break.
	ResultNotFound
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultNotWorking:
		return "NOTWORKING"
	case ResultNotFound:
		return "NOTFOUND"
	default:
		return "UNKNOWN"
	}
}
