package service

import (
	"fmt"

	"shareit/internal/domain"
)

// pageWindow validates (from, size) and translates them into the offset and
// limit actually sent to the store. The offset is the start of the page
// containing `from`, preserving the original page arithmetic: requesting
// from=25 size=10 reads the page starting at 20.
func pageWindow(from, size int) (offset, limit int, err error) {
	if from < 0 || size < 1 {
		return 0, 0, fmt.Errorf("%w: from=%d size=%d", domain.ErrInvalidPagination, from, size)
	}
	return (from / size) * size, size, nil
}
