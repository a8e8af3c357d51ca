package storage

import (
	"encoding/binary"
	"errors"
	"math"
)

var errPeakBlobSize = errors.New("peak blob size does not match peak count")

// encodePeaks packs the two parallel arrays into one little-endian blob:
// n m/z values followed by n intensities.
func encodePeaks(mz, intensities []float64) []byte {
	buf := make([]byte, 16*len(mz))
	off := 0
	for _, v := range mz {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}
	for _, v := range intensities {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}
	return buf
}

func decodePeaks(blob []byte, n int) (mz, intensities []float64, err error) {
	if len(blob) != 16*n {
		return nil, nil, errPeakBlobSize
	}
	mz = make([]float64, n)
	intensities = make([]float64, n)
	off := 0
	for i := 0; i < n; i++ {
		mz[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off:]))
		off += 8
	}
	for i := 0; i < n; i++ {
		intensities[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off:]))
		off += 8
	}
	return mz, intensities, nil
}
