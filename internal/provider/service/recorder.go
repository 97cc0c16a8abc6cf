package service

// Recorder receives outcome events from the services. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	Authorization(outcome string)
	Exchange(outcome string)
	Revocation(revoked bool)
	StaleRequestTokens(n int64)
}

// Outcome labels reported to a Recorder.
const (
	OutcomeLabelAuthorized = "authorized"
	OutcomeLabelDenied     = "denied"
	OutcomeLabelRejected   = "rejected"
	OutcomeLabelError      = "error"
	OutcomeLabelIssued     = "issued"
)

type nopRecorder struct{}

func (nopRecorder) Authorization(string) {}
func (nopRecorder) Exchange(string) {}
func (nopRecorder) Revocation(bool) {}
func (nopRecorder) StaleRequestTokens(int64) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// outcomeLabel maps an error returned by a service to a Recorder label.
func outcomeLabel(err error) string {
	if err == nil {
		return OutcomeLabelIssued
	}
	if isStorageFailure(err) {
		return OutcomeLabelError
	}
	return OutcomeLabelRejected
}
