package capture

import (
	"math"
	"testing"
)

func sine(freqHz float64, sampleRate, n int, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
	}
	return out
}

func rms(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestEnhanceEmptyInput(t *testing.T) {
	if out := Enhance(nil, 16000); out != nil {
		t.Fatalf("expected nil output for empty input")
	}
}

func TestEnhancePeakStaysWithinTarget(t *testing.T) {
	in := sine(440, 16000, 16000, 0.05)
	out := Enhance(in, 16000)

	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak > peakNormalizeTarget+1e-3 {
		t.Fatalf("peak %f exceeds normalize target", peak)
	}
	if peak < peakNormalizeTarget-0.05 {
		t.Fatalf("peak %f well below normalize target, normalization missing", peak)
	}
}

func TestEnhanceBoostsQuietSpeech(t *testing.T) {
	in := sine(440, 16000, 16000, 0.01)
	out := Enhance(in, 16000)
	if rms(out) <= rms(in) {
		t.Fatalf("expected quiet input to be boosted: in=%f out=%f", rms(in), rms(out))
	}
}

func TestHighpassAttenuatesRumble(t *testing.T) {
	rumble := sine(30, 16000, 16000, 0.5)
	speech := sine(440, 16000, 16000, 0.5)

	highpass(rumble, 16000, highpassFreqHz)
	highpass(speech, 16000, highpassFreqHz)

	// Skip the filter warm-up region.
	if rms(rumble[4000:]) > 0.5*rms(speech[4000:]) {
		t.Fatalf("30Hz rumble insufficiently attenuated: rumble=%f speech=%f",
			rms(rumble[4000:]), rms(speech[4000:]))
	}
}

func TestDownmixAverages(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := Downmix(stereo, 2)
	want := []float32{0.5, 0.5, 0}
	if len(mono) != len(want) {
		t.Fatalf("unexpected length %d", len(mono))
	}
	for i := range want {
		if math.Abs(float64(mono[i]-want[i])) > 1e-6 {
			t.Fatalf("sample %d: got %f want %f", i, mono[i], want[i])
		}
	}
}

func TestResampleHalvesLength(t *testing.T) {
	in := sine(440, 32000, 32000, 0.5)
	out := Resample(in, 32000, 16000)
	if len(out) < 15900 || len(out) > 16000 {
		t.Fatalf("unexpected resampled length %d", len(out))
	}
}

func TestResampleIdentity(t *testing.T) {
	in := sine(440, 16000, 100, 0.5)
	out := Resample(in, 16000, 16000)
	if len(out) != len(in) {
		t.Fatalf("identity resample changed length")
	}
}
