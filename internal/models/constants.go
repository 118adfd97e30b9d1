package models

// CategoryOther is used for transactions without a category.
const CategoryOther = "Other"

// Direction of a category's spend between two periods.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// File and directory permissions used when writing exports and databases.
const (
	PermissionDirectory  = 0o750
	PermissionReportFile = 0o644
)
