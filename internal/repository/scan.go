package repository

type scanner interface {
	Scan(dest ...interface{}) error
}
