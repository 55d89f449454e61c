// ABOUTME: Linear interpolation resampler for converting audio sample rates
// ABOUTME: Carries the last input frame across calls so chunk boundaries interpolate
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
	lastSample []int32 // one sample per channel
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
		lastSample: make([]int32, channels),
	}
}

// Resample converts input samples to the output rate using linear interpolation.
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
// The final input frame is held back and becomes the first interpolation
// point of the next call. Size output with OutputSamplesNeeded.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	offset := 0
	if r.primed {
		offset = 1
	}
	total := inputFrames + offset

	frame := func(idx, ch int) int32 {
		if idx < offset {
			return r.lastSample[ch]
		}
		return input[(idx-offset)*r.channels+ch]
	}

	outputFrames := len(output) / r.channels
	outIdx := 0

	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= total-1 {
			break
		}

		frac := r.position - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			sample1 := frame(inputIdx, ch)
			sample2 := frame(inputIdx+1, ch)

			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	for ch := 0; ch < r.channels; ch++ {
		r.lastSample[ch] = frame(total-1, ch)
	}
	r.primed = true

	// Rebase onto the held frame; a short output buffer drops the remainder
	r.position -= float64(total - 1)
	if r.position < 0 {
		r.position = 0
	}

	return outIdx * r.channels
}

// Reset discards the held frame and fractional position
func (r *Resampler) Reset() {
	r.position = 0.0
	r.primed = false
	for i := range r.lastSample {
		r.lastSample[i] = 0
	}
}

// OutputSamplesNeeded returns how many output samples the next Resample call
// produces for inputSamples of input
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	total := inputSamples / r.channels
	if r.primed {
		total++
	}
	span := float64(total-1) - r.position
	if span <= 0 {
		return 0
	}
	return int(math.Ceil(span/r.ratio)) * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}
