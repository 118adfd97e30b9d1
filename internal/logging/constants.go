package logging

// Standard field keys used in structured log output.
const (
	FieldPlanID      = "plan_id"
	FieldProvider    = "provider"
	FieldItem        = "item"
	FieldCategory    = "category"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldCount       = "count"
	FieldToday       = "today"
	FieldHorizon     = "horizon"
	FieldRemaining   = "instalments_remaining"
	FieldNextPayment = "next_payment_date"
	FieldAmount      = "amount_cents"
	FieldInputFile   = "input_file"
	FieldDriver      = "driver"
	FieldDuration    = "duration_ms"
)
