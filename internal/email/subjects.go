package email

const (
	subjectLeadQualifiedFmt = "Lead qualificado: %s"
)
