package storage

// Persisted collection keys. The names match the browser application's
// localStorage keys so its exports can be imported unchanged.
const (
	SchoolKey  = "schoolData"
	StudentKey = "studentData"
)
