package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibility_VisibleTo(t *testing.T) {
	tests := []struct {
		visibility Visibility
		viewer     UserType
		want       bool
	}{
		{VisibilityAll, UserTypeStudent, true},
		{VisibilityAll, UserTypeTeacher, true},
		{VisibilityTeachersOnly, UserTypeTeacher, true},
		{VisibilityTeachersOnly, UserTypeStudent, false},
		{VisibilityStudentsOnly, UserTypeStudent, true},
		{VisibilityStudentsOnly, UserTypeTeacher, false},
		{VisibilityTeachersOnly, UserTypeAdmin, true},
		{VisibilityStudentsOnly, UserTypeAdmin, true},
		{VisibilityAll, UserType("GUEST"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.visibility.VisibleTo(tt.viewer), "%s -> %s", tt.visibility, tt.viewer)
	}
}

func TestParseUserType(t *testing.T) {
	ut, ok := ParseUserType("teacher")
	assert.True(t, ok)
	assert.Equal(t, UserTypeTeacher, ut)
	assert.Equal(t, "teacher", ut.Slug())

	_, ok = ParseUserType("parent")
	assert.False(t, ok)
}

func TestRecipientColumnsRoundTrip(t *testing.T) {
	for _, r := range []Recipient{AdminRecipient(1), TeacherRecipient(2), StudentRecipient(3)} {
		a, tc, s := r.Columns()
		got, err := RecipientFromColumns(a, tc, s)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestRecipientFromColumnsRejectsNonOneHot(t *testing.T) {
	one, two := int64(1), int64(2)

	_, err := RecipientFromColumns(nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = RecipientFromColumns(&one, nil, &two)
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
	assert.True(t, Page{}.Unbounded())
}
