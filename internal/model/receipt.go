package model

// Receipt carries everything the PDF generator needs to render a
// settlement receipt for one paid job.
type Receipt struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
