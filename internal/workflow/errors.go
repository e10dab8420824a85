package workflow

import "errors"

// Action names a workflow operation.
type Action string

const (
	ActionSubmitDataset Action = "submit_dataset"
	ActionConfigure     Action = "configure_training"
	ActionTrain         Action = "run_training"
	ActionPredict       Action = "run_prediction"
)

// ErrorKind classifies why an action failed.
type ErrorKind int

const (
	// KindValidation means local preconditions failed and no request was sent.
	KindValidation ErrorKind = iota
	// KindTransport means the service was unreachable or answered with a failure status.
	KindTransport
	// KindLogical means the service answered but reported an application error.
	KindLogical
	// KindStale means the response arrived for a configuration that is no longer live.
	KindStale
	// KindBusy means another action was still in flight.
	KindBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindTransport:
		return "transport_error"
	case KindLogical:
		return "logical_error"
	case KindStale:
		return "stale"
	case KindBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// User-facing fallback messages.
const (
	MsgUploadFailed     = "Upload failed"
	MsgTrainingFailed   = "Model training failed"
	MsgPredictionFailed = "Prediction error"
	MsgNoMetric         = "Training response did not include a metric"
	MsgBusy             = "Another action is still running"
	MsgStale            = "Configuration changed while the request was running; result discarded"
)

var (
	ErrNoFile           = errors.New("no dataset file selected")
	ErrUnknownColumn    = errors.New("column is not in the dataset")
	ErrUnknownTaskType  = errors.New("unknown task type")
	ErrUnknownAlgorithm = errors.New("algorithm is not available for this task")
	ErrTargetUnset      = errors.New("target column is not set")
	ErrAlgorithmUnset   = errors.New("algorithm is not set")
	ErrNotTrained       = errors.New("no trained model")
	ErrBusy             = errors.New("action already in flight")
	ErrStaleResponse    = errors.New("response belongs to a superseded configuration")
)

// ActionError is returned by every failed workflow action.
// Message is what the user should see.
type ActionError struct {
	Action  Action
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err if it is an ActionError.
func KindOf(err error) (ErrorKind, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}
