package sensors

// AccelReader reads one raw accelerometer sample in sensor LSB units.
type AccelReader interface {
	ReadAccel() (x, y, z int16, err error)
}

// HoldLast wraps a reader so transient read failures return the last
// good sample instead of an error. The companion keeps its orientation
// steady while the sensor recovers; only a reader that never produced
// a sample propagates the error.
type HoldLast struct {
	r        AccelReader
	x, y, z  int16
	primed   bool
	failures int
}

func NewHoldLast(r AccelReader) *HoldLast {
	return &HoldLast{r: r}
}

func (h *HoldLast) ReadAccel() (int16, int16, int16, error) {
	x, y, z, err := h.r.ReadAccel()
	if err != nil {
		h.failures++
		if !h.primed {
			return 0, 0, 0, err
		}
		return h.x, h.y, h.z, nil
	}
	h.x, h.y, h.z = x, y, z
	h.primed = true
	return x, y, z, nil
}

// Failures returns how many reads fell back to the held sample.
func (h *HoldLast) Failures() int { return h.failures }
