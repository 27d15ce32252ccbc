package core

// Finish applies the colour options of params that a decoder does not handle
// natively: auto white balance and auto brightness.  Camera white balance
// and AutoBright=false leave buf unchanged.
func Finish(buf *Buffer, params PostprocessParams) {
	if params.WhiteBalance == WhiteBalanceAuto {
		grayWorld(buf)
	}
	if params.AutoBright {
		stretch(buf)
	}
}

// grayWorld scales each colour channel so its mean matches the mean of all
// colour channels.  Alpha is left alone.
func grayWorld(buf *Buffer) {
	means := buf.ChannelMeans()
	colour := min(buf.Channels, 3)
	if means == nil || colour < 2 {
		return
	}
	var target float64
	for c := 0; c < colour; c++ {
		target += means[c]
	}
	target /= float64(colour)

	gains := make([]float64, buf.Channels)
	for c := range gains {
		gains[c] = 1
		if c < colour && means[c] > 0 {
			gains[c] = target / means[c]
		}
	}
	scale(buf, gains)
}

// stretch scales all samples so the brightest reaches the depth maximum.
func stretch(buf *Buffer) {
	m := buf.Max()
	if m == 0 {
		return
	}
	g := float64(buf.Depth.MaxSample()) / float64(m)
	gains := make([]float64, buf.Channels)
	for c := range gains {
		gains[c] = g
	}
	scale(buf, gains)
}

func scale(buf *Buffer, gains []float64) {
	hi := float64(buf.Depth.MaxSample())
	for i, v := range buf.Pix {
		x := float64(v)*gains[i%buf.Channels] + 0.5
		if x > hi {
			x = hi
		}
		buf.Pix[i] = uint16(x)
	}
}
