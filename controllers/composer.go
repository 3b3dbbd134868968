package controllers

import "course-folder-api/services"

// reportComposer is the wired PDF composer. Rendering is an external concern;
// until one is registered the engine records report generation as FAILED and
// keeps transitions committed.
var reportComposer services.ReportComposer

// SetReportComposer registers the PDF composer used for auditor and
// consolidated reports.
func SetReportComposer(rc services.ReportComposer) {
	reportComposer = rc
}
