package capture

import "math"

// Enhancement parameters tuned for speech headed to a Whisper-family model.
const (
	highpassFreqHz      = 80.0
	targetRMSDB         = -18.0
	maxGain             = 20.0
	softLimitThreshold  = 0.7
	peakNormalizeTarget = 0.95
)

// Enhance runs the speech cleanup chain: high-pass to cut rumble, RMS
// normalization toward the target loudness, a tanh soft limiter, and a final
// peak normalization. Input samples are mono float32 in [-1, 1].
func Enhance(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 {
		return nil
	}

	out := make([]float32, len(samples))
	copy(out, samples)

	highpass(out, sampleRate, highpassFreqHz)

	var sum float64
	for _, s := range out {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(out)))
	if rms > 1e-6 {
		target := math.Pow(10, targetRMSDB/20)
		gain := target / rms
		if gain > maxGain {
			gain = maxGain
		}
		for i := range out {
			out[i] *= float32(gain)
		}
	}

	for i, s := range out {
		abs := float64(s)
		sign := 1.0
		if abs < 0 {
			abs, sign = -abs, -1.0
		}
		if abs > softLimitThreshold {
			compressed := softLimitThreshold +
				(1-softLimitThreshold)*math.Tanh((abs-softLimitThreshold)/(1-softLimitThreshold))
			out[i] = float32(sign * compressed)
		}
	}

	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak > 1e-6 {
		gain := peakNormalizeTarget / peak
		for i := range out {
			out[i] *= float32(gain)
		}
	}

	return out
}

// highpass applies a Butterworth high-pass biquad (RBJ cookbook, direct form
// 1) in place.
func highpass(samples []float32, sampleRate int, cutoffHz float64) {
	if sampleRate <= 0 || cutoffHz <= 0 {
		return
	}

	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * math.Sqrt2 / 2)

	b0 := (1 + cosw0) / 2
	b1 := -(1 + cosw0)
	b2 := (1 + cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha

	b0, b1, b2 = b0/a0, b1/a0, b2/a0
	a1, a2 = a1/a0, a2/a0

	var x1, x2, y1, y2 float64
	for i, s := range samples {
		x := float64(s)
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		samples[i] = float32(y)
	}
}

// Downmix averages interleaved multi-channel samples down to mono.
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float32, 0, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[f*channels+c]
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

// Resample converts mono samples between rates with linear interpolation.
func Resample(input []float32, srcRate, dstRate int) []float32 {
	if len(input) == 0 || srcRate == dstRate || srcRate <= 0 || dstRate <= 0 {
		return input
	}

	ratio := float64(srcRate) / float64(dstRate)
	outputLen := int(math.Floor(float64(len(input)) / ratio))

	out := make([]float32, 0, outputLen)
	for i := 0; i < outputLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := float32(srcPos - float64(idx))
		s0 := input[idx]
		s1 := s0
		if idx+1 < len(input) {
			s1 = input[idx+1]
		}
		out = append(out, s0+(s1-s0)*frac)
	}
	return out
}
