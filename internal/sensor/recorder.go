package sensor

import "github.com/stress-monitor/esms/internal/model"

// multiRecorder fans a reading out to several sinks in order. The telemetry
// store comes first so readers always observe a recorded reading before any
// mirror does.
type multiRecorder []Recorder

// MultiRecorder combines recorders into one. Nil entries are skipped.
func MultiRecorder(recorders ...Recorder) Recorder {
	var mr multiRecorder
	for _, r := range recorders {
		if r != nil {
			mr = append(mr, r)
		}
	}
	return mr
}

func (mr multiRecorder) Record(r model.Reading) {
	for _, rec := range mr {
		rec.Record(r)
	}
}
