package order

// Status is assigned by the trade service. New orders start out pending, and
// checkout reports that status when the reply leaves it out.
type Status string

const StatusPending Status = "PENDING"
