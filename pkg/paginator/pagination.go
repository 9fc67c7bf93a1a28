package paginator

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

type Paginate struct {
	From, Size, Page int
}

// New reads page and page_size from the query string. Out-of-range values
// are clamped rather than rejected.
func New(c *gin.Context) Paginate {
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultSize)))
	if err != nil || size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	return Paginate{
		From: (page - 1) * size,
		Size: size,
		Page: page,
	}
}

func (p Paginate) Meta(total int64) gin.H {
	return gin.H{
		"page_size": p.Size,
		"page":      p.Page,
		"total":     total,
	}
}
