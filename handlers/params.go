// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-elect/middleware"
)

// pathIDs parses the named path segments as ids. On failure it writes a 400
// and returns false.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int64, bool) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
		if err != nil || id <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid "+name)
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func electionPath(id int64) string {
	return "/elections/" + strconv.FormatInt(id, 10)
}

func publicPath(id int64) string {
	return "/public/" + strconv.FormatInt(id, 10)
}
