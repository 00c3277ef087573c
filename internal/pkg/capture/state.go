package capture

// State represents recording session state
type State int

const (
	// Idle - no device acquired
	Idle State = iota + 1
	// DeviceReady - stream attached, ready to record
	DeviceReady
	// Recording - chunks are being buffered
	Recording
	// Stopped - chunk sequence finalized
	Stopped
	// Uploading - blob handed to the upload coordinator
	Uploading
	// Ready - artifact reference available
	Ready
	// Failed - device, recording or upload failure
	Failed
)

var stateName = map[State]string{Idle: "IDLE", DeviceReady: "DEVICE_READY",
	Recording: "RECORDING", Stopped: "STOPPED", Uploading: "UPLOADING",
	Ready: "READY", Failed: "FAILED"}

func (st State) String() string {
	return stateName[st]
}
