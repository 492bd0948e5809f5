package handlers

import (
	"strconv"

	"apporbit/internal/apperrors"
)

// parsePaginationParams reads page and limit; zero means "use the default".
func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	var page, limit int64

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, apperrors.Validation("page must be a positive integer")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, apperrors.Validation("limit must be a positive integer")
		}
		limit = l
	}

	return page, limit, nil
}

func parseLimit(limitStr string) (int64, error) {
	_, limit, err := parsePaginationParams("", limitStr)
	return limit, err
}
