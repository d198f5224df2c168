package core

// DBOrdering is one ordering criterion of a list request, eg. topic views by
// due date. The API layer sorts derived fields itself; String renders the
// criterion as an ORDER BY term for repositories that can push it down.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
