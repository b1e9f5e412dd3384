package analyzer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/eswarib/biodatamine/internal/domain"
)

// niftiHeaderSize is the fixed NIfTI-1 header size in bytes.
const niftiHeaderSize = 348

// sniffNIfTI reads a NIfTI-1 header (transparently gunzipping .nii.gz) and
// extracts dims and datatype, per spec.md §4.3's "nifti with full shape".
func sniffNIfTI(path string) (meta *domain.NIfTIMeta, ndim int, dims []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("open nifti %s: %w", path, err)
	}
	defer f.Close()

	gzipped := strings.HasSuffix(strings.ToLower(path), ".gz")

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("gunzip nifti %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	header := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(bufio.NewReader(r), header); err != nil {
		return nil, 0, nil, fmt.Errorf("read nifti header %s: %w", path, err)
	}

	order, big, err := niftiByteOrder(header)
	if err != nil {
		return nil, 0, nil, err
	}

	rawDim := header[40:56] // short dim[8]
	ndimVal := int(order.Uint16(rawDim[0:2]))
	if ndimVal < 0 || ndimVal > 7 {
		return nil, 0, nil, fmt.Errorf("nifti %s: implausible ndim %d", path, ndimVal)
	}

	allDims := make([]int, 0, ndimVal)
	for i := 1; i <= ndimVal; i++ {
		allDims = append(allDims, int(order.Uint16(rawDim[i*2:i*2+2])))
	}

	datatype := int16(order.Uint16(header[70:72]))
	endianName := "little"
	if big {
		endianName = "big"
	}

	meta = &domain.NIfTIMeta{
		Dims:     allDims,
		DataType: datatype,
		Gzipped:  gzipped,
		Endian:   endianName,
	}
	return meta, ndimVal, allDims, nil
}

// niftiByteOrder returns the binary.ByteOrder that makes sizeof_hdr read
// back as 348, trying little-endian first since it is by far the common
// case on modern scanners/export tools.
func niftiByteOrder(header []byte) (order binary.ByteOrder, big bool, err error) {
	if binary.LittleEndian.Uint32(header[0:4]) == niftiHeaderSize {
		return binary.LittleEndian, false, nil
	}
	if binary.BigEndian.Uint32(header[0:4]) == niftiHeaderSize {
		return binary.BigEndian, true, nil
	}
	return nil, false, fmt.Errorf("not a recognizable nifti-1 header (sizeof_hdr mismatch)")
}
