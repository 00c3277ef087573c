package api

// form/request parameter names
const (
	// PrmFile is the multipart form parameter for the video file
	PrmFile = "file"
)

// Role describes the position a candidate is interviewed for
type Role struct {
	Title       string `json:"role_title"`
	Description string `json:"role_description"`
}

// InterviewStart is the scoring service response for a new interview
type InterviewStart struct {
	InterviewID    string   `json:"interview_id"`
	Greeting       string   `json:"greeting"`
	Questions      []string `json:"questions"`
	TotalQuestions int      `json:"total_questions"`
}

// RolesData is the scoring service role catalog response
type RolesData struct {
	Status           string            `json:"status"`
	Roles            []string          `json:"roles"`
	RoleDescriptions map[string]string `json:"role_descriptions"`
}

// ReportQuestion keeps one answered (or unanswered) question of a report
type ReportQuestion struct {
	QuestionText  string      `json:"question_text"`
	VideoPath     string      `json:"video_path,omitempty"`
	Transcription string      `json:"transcription,omitempty"`
	Summary       string      `json:"summary,omitempty"`
	Evaluation    *Evaluation `json:"evaluation,omitempty"`
}

// Report is the full recruiter report for one interview
type Report struct {
	InterviewID        string           `json:"interview_id"`
	RoleTitle          string           `json:"role_title"`
	GreetingText       string           `json:"greeting_text"`
	Questions          []ReportQuestion `json:"questions"`
	CompletedQuestions int              `json:"completed_questions"`
	TotalQuestions     int              `json:"total_questions"`
	OverallEvaluation  *Evaluation      `json:"overall_evaluation,omitempty"`
	ProcessingComplete bool             `json:"ai_processing_complete"`
}

// Final returns true if the asynchronous AI scoring has finished
// and no further polling is needed
func (r *Report) Final() bool {
	return r != nil && r.ProcessingComplete
}

// DefaultRoles is the built-in role catalog used when the scoring
// service does not provide one
func DefaultRoles() []Role {
	return []Role{
		{Title: "Software Engineer",
			Description: "We're seeking a brilliant Software Engineer to join our innovative team. You'll be crafting cutting-edge applications, solving complex technical challenges, and contributing to products that impact millions of users worldwide. Experience with modern frameworks, cloud technologies, and a passion for clean code is essential."},
		{Title: "Data Scientist",
			Description: "Join our data science team to unlock insights from massive datasets and build machine learning models that drive business decisions. You'll work with cutting-edge AI technologies, develop predictive models, and communicate complex findings to stakeholders."},
		{Title: "Product Manager",
			Description: "Lead product strategy and execution for innovative digital products. You'll work with cross-functional teams, conduct user research, define product roadmaps, and ensure successful product launches that delight users and drive business growth."},
		{Title: "UX Designer",
			Description: "Create exceptional user experiences through thoughtful design, user research, and prototyping. You'll collaborate with product and engineering teams to design intuitive interfaces that solve real user problems and drive engagement."},
		{Title: "DevOps Engineer",
			Description: "Build and maintain robust infrastructure and deployment pipelines. You'll work with cloud technologies, implement CI/CD processes, ensure system reliability, and optimize performance for scalable applications."},
	}
}
