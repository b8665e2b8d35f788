package datatable

import "strconv"

func parseInt64Strict(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}

func parseFloat64Strict(v string) (float64, error) {
	return strconv.ParseFloat(v, 64)
}
