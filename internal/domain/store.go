package domain

// Store bundles every repository a storage backend provides.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Entries(k Kind) EntryRepository
	Measurements(k Kind) MeasurementRepository
	NeedQuestions() NeedQuestionRepository
	TargetNames() TargetNameRepository
	Close() error
}
