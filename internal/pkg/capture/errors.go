package capture

// DeviceError indicates a capture device failure the user may correct
// (permission denied, no device, device busy)
type DeviceError struct {
	Reason string
	err    error
}

// NewDeviceError creates new error
func NewDeviceError(reason string, err error) *DeviceError {
	return &DeviceError{Reason: reason, err: err}
}

func (e *DeviceError) Error() string {
	if e.err != nil {
		return "device error: " + e.Reason + ": " + e.err.Error()
	}
	return "device error: " + e.Reason
}

func (e *DeviceError) Unwrap() error {
	return e.err
}

// RecordingError indicates an invalid recording state transition.
// Callers surface it as a disabled control, not a fault
type RecordingError struct {
	Msg string
}

func (e *RecordingError) Error() string {
	return "recording error: " + e.Msg
}
