package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/GeoAttend/GA-Backend/internal/db"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var upper = cases.Upper(language.Und)

// NormalizeEnrollment canonicalizes an enrollment number the way it is
// stored: trimmed, inner whitespace removed, uppercase.
func NormalizeEnrollment(enrollmentNo string) string {
	s := strings.Join(strings.Fields(enrollmentNo), "")
	return upper.String(s)
}

// Finder resolves students by enrollment number. The attendance engine
// depends on this through its own narrow interface.
type Finder struct{}

// FindByEnrollment returns (nil, nil) when no student matches, so callers
// can tell "unknown student" apart from a storage fault.
func (Finder) FindByEnrollment(ctx context.Context, enrollmentNo string) (*Student, error) {
	var student Student
	err := db.DB.WithContext(ctx).
		First(&student, "enrollment_no = ?", NormalizeEnrollment(enrollmentNo)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}
