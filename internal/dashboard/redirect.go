// Package dashboard вычисляет, на какой дашборд отправить студента
// по году, семестру и профилю предметов.
package dashboard

import (
	"fmt"
	"strings"
)

// DefaultPath - дашборд по умолчанию для любой неизвестной комбинации
const DefaultPath = "/dashboard1/physics"

// первый курс делится по профилю, а не по семестру
var firstYearCombos = map[string]string{
	"physics":   "/dashboard1/physics",
	"chemistry": "/dashboard1/chemistry",
}

// ResolvePath - чистая функция (year, semester, subject_combo) -> путь.
//
//	year 1:    physics -> /dashboard1/physics, chemistry -> /dashboard1/chemistry
//	year 2..4: semester 2y-1 -> /dashboard{y}/dashboard{y}1, 2y -> /dashboard{y}/dashboard{y}2,
//	           без семестра -> /dashboard{y}/dashboard{y}1
//
// Все остальное -> DefaultPath.
func ResolvePath(year, semester *int, subjectCombo *string) string {
	if year == nil {
		return DefaultPath
	}

	y := *year
	switch {
	case y == 1:
		if subjectCombo == nil {
			return DefaultPath
		}
		if path, ok := firstYearCombos[strings.ToLower(strings.TrimSpace(*subjectCombo))]; ok {
			return path
		}
		return DefaultPath

	case y >= 2 && y <= 4:
		if semester == nil {
			return yearPath(y, 1)
		}
		switch *semester {
		case 2*y - 1:
			return yearPath(y, 1)
		case 2 * y:
			return yearPath(y, 2)
		}
		return DefaultPath
	}

	return DefaultPath
}

// SemesterBelongsToYear - семестр s относится к курсу y (2y-1 или 2y)
func SemesterBelongsToYear(year, semester int) bool {
	return semester == 2*year-1 || semester == 2*year
}

func yearPath(year, half int) string {
	return fmt.Sprintf("/dashboard%d/dashboard%d%d", year, year, half)
}
