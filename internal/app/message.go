package app

import (
	"fmt"

	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
)

// SegmentMessage is the per-axis payload published for every processed
// frame. Time, Disp, Vel and Acc are aligned sample-by-sample and cover
// the newest frame only.
type SegmentMessage struct {
	Axis     string    `json:"axis"`
	Time     []float64 `json:"time"`
	Disp     []float64 `json:"disp"`
	Vel      []float64 `json:"vel"`
	Acc      []float64 `json:"acc"`
	WarmedUp bool      `json:"warmedUp"`
}

// KinematicsTopic returns the MQTT topic carrying segments for one axis.
func KinematicsTopic(prefix string, a pipeline.Axis) string {
	return fmt.Sprintf("%s/kinematics/%s", prefix, a)
}

func newSegmentMessage(res *pipeline.Result, a pipeline.Axis) SegmentMessage {
	seg := res.Axes[a]
	return SegmentMessage{
		Axis:     a.String(),
		Time:     res.Time,
		Disp:     seg.Disp,
		Vel:      seg.Vel,
		Acc:      seg.Acc,
		WarmedUp: res.WarmedUp,
	}
}
