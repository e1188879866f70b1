package patch

// SumAudio writes the sample-wise sum of the source slices into dst. With no
// sources dst is zero-filled. Sources shorter than dst are a caller error.
func SumAudio(dst []float64, srcs ...[]float64) {
	for i := range dst {
		var acc float64
		for _, src := range srcs {
			acc += src[i]
		}
		dst[i] = acc
	}
}
