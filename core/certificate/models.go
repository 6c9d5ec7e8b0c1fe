package certificate

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "January 2, 2006"

// Certificate holds everything printed on a certificate of achievement.
type Certificate struct {
	ResultID           string    `json:"resultId"`
	CertificateID      string    `json:"certificateId"`
	StudentName        string    `json:"studentName"`
	RegistrationNumber string    `json:"registrationNumber"`
	TestName           string    `json:"testName"`
	Score              float64   `json:"score"`
	TotalMarks         float64   `json:"totalMarks"`
	Accuracy           float64   `json:"accuracy"`
	Percentage         float64   `json:"percentage"`
	IssueDate          time.Time `json:"issueDate"`
	ExamDate           time.Time `json:"examDate"`
	VerifyURL          string    `json:"verifyUrl,omitempty"`
}

func (c Certificate) PercentageText() string {
	return fmt.Sprintf("%.2f%%", c.Percentage)
}

func (c Certificate) IssueDateText() string {
	return c.IssueDate.Format(DateLayout)
}

func (c Certificate) ExamDateText() string {
	return c.ExamDate.Format(DateLayout)
}

var filenameReplacer = strings.NewReplacer(" ", "_", `"`, "", "/", "", `\`, "")

// Filename is the download name: the student's name with spaces replaced by underscores.
func (c Certificate) Filename() string {
	name := filenameReplacer.Replace(strings.TrimSpace(c.StudentName))
	if name == "" {
		name = "Student"
	}
	return name + "_Certificate.pdf"
}
