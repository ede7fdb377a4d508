package domain

// Employee is the salary record exposed behind the CanViewSalaries policy.
type Employee struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Salary float64 `json:"salary"`
}
