package blockcodec

const (
	defaultQuality    = 75
	defaultErrorScale = 10.0
	defaultPreviewDim = 400
)

// levelShift is subtracted from 8-bit samples when EncodeOptions.LevelShift is set.
const levelShift = 128
