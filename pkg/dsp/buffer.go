package dsp

// Buffer utilities for common audio operations

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Fill sets every sample of a buffer to value - no allocations
func Fill(buffer []float32, value float32) {
	for i := range buffer {
		buffer[i] = value
	}
}
