package models

import "testing"

func TestUser_CalculateCompletionRate(t *testing.T) {
	year := 3
	picture := "/media/pictures/u1.png"

	tests := []struct {
		name string
		user User
		want int
	}{
		{
			name: "empty profile",
			user: User{},
			want: 0,
		},
		{
			name: "registration baseline",
			user: User{Name: "Dana Velasquez", Email: "dana@example.edu"},
			want: 25,
		},
		{
			name: "half complete",
			user: User{
				Name:        "Dana Velasquez",
				Email:       "dana@example.edu",
				PhoneNumber: "+2348012345678",
				Location:    "Lagos",
			},
			want: 50,
		},
		{
			name: "fully complete",
			user: User{
				Name:              "Dana Velasquez",
				Email:             "dana@example.edu",
				PhoneNumber:       "+2348012345678",
				Location:          "Lagos",
				Course:            "Computer Science",
				YearOfStudy:       &year,
				Description:       "Final year student",
				ProfilePictureURL: &picture,
			},
			want: 100,
		},
		{
			name: "empty picture URL does not count",
			user: func() User {
				empty := ""
				return User{
					Name:              "Dana Velasquez",
					Email:             "dana@example.edu",
					ProfilePictureURL: &empty,
				}
			}(),
			want: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.user.CalculateCompletionRate()
			if got != tt.want {
				t.Errorf("Expected %d%%, got %d%%", tt.want, got)
			}
			if tt.user.CompletionRate != tt.want {
				t.Errorf("Expected field to be updated to %d, got %d", tt.want, tt.user.CompletionRate)
			}
		})
	}
}

func TestApplicationStatus_IsValid(t *testing.T) {
	for _, status := range ApplicationStatuses {
		if !status.IsValid() {
			t.Errorf("Expected %s to be valid", status)
		}
	}
	if ApplicationStatus("approved").IsValid() {
		t.Error("Expected unknown status to be invalid")
	}
}
