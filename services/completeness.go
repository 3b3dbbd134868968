package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"course-folder-api/jsondoc"
	"course-folder-api/models"
)

// CheckpointKind distinguishes the two submission cycles.
type CheckpointKind string

const (
	CheckpointFirst  CheckpointKind = "first"
	CheckpointSecond CheckpointKind = "second"
)

// Required assessment counts per checkpoint.
const (
	firstCycleAssignments  = 2
	firstCycleQuizzes      = 2
	secondCycleAssignments = 4
	secondCycleQuizzes     = 4
)

// CompletenessInput is everything the validator needs, extracted from the
// folder and its child records so validation itself stays a pure function.
type CompletenessInput struct {
	Status              string
	CheckpointCompleted bool
	Content             *jsondoc.Object

	HasLogEntryRows          bool
	AllLogRowsHaveAttendance bool
	HasAttendanceComponent   bool

	CLOAssessmentUploaded bool
	ProjectReportUploaded bool
	CourseResultUploaded  bool
	ReviewReportUploaded  bool
}

// CheckpointFor determines which completeness rules apply. The second cycle
// begins only once the first cycle is fully approved and the folder sits at
// APPROVED_BY_HOD awaiting its re-submission.
func CheckpointFor(status string, checkpointCompleted bool) CheckpointKind {
	if checkpointCompleted && status == models.StatusApprovedByHOD {
		return CheckpointSecond
	}
	return CheckpointFirst
}

// ValidateCompleteness checks the folder content against the rules of its
// checkpoint. It collects every unmet requirement rather than failing fast,
// except for the two hard stops: an empty document, and a first-cycle
// submission before any midterm record exists.
func ValidateCompleteness(in CompletenessInput) (bool, []string) {
	content := in.Content
	if content.Len() == 0 {
		return false, []string{
			"Cannot submit an empty folder. Please add at least some content (course outline or course log) before submitting.",
		}
	}

	hasOutline := sectionPresent(content,
		"courseOutline", "course_outline", "introduction", "objectives",
		"courseDescription", "learningOutcomes", "creditHours", "textbooks")
	hasLog := in.HasLogEntryRows || sectionPresent(content, "courseLogEntries", "courseLogs")
	hasAssignments := sectionPresent(content, "assignments")
	hasQuizzes := sectionPresent(content, "quizzes")
	hasMidterm := sectionPresent(content, "midterm", "midTerm", "midtermPaper", "midtermSolution", "midtermRecords")
	hasFinal := sectionPresent(content, "final", "finalExam", "finalPaper", "finalSolution", "finalRecords")

	if !hasOutline && !hasLog && !hasAssignments && !hasQuizzes && !hasMidterm && !hasFinal {
		return false, []string{
			"Cannot submit an empty folder. Please add at least some content (course outline or course log) before submitting.",
		}
	}

	checkpoint := CheckpointFor(in.Status, in.CheckpointCompleted)
	if checkpoint == CheckpointFirst && !hasMidterm {
		return false, []string{
			"Cannot submit folder before midterm. Please upload midterm records first.",
		}
	}

	var errs []string

	if !hasOutline {
		errs = append(errs, "Course Outline is required. Please add course outline content (Introduction, Objectives, Course Description, etc.).")
	}
	if !hasLog {
		errs = append(errs, "Course Log is required. Please add at least one course log entry.")
	}

	if !in.HasAttendanceComponent && !(in.HasLogEntryRows && in.AllLogRowsHaveAttendance) && !attendanceEmbedded(content) {
		errs = append(errs, "Attendance record is required. Please upload attendance sheets (either as a component or attach to course log entries).")
	}

	if !in.CLOAssessmentUploaded {
		errs = append(errs, fmt.Sprintf("CLO Assessment is required for %s. Please upload the CLO assessment.", stageName(checkpoint)))
	}

	requiredAssignments := firstCycleAssignments
	requiredQuizzes := firstCycleQuizzes
	if checkpoint == CheckpointSecond {
		requiredAssignments = secondCycleAssignments
		requiredQuizzes = secondCycleQuizzes

		errs = append(errs, examBlockErrors(content, "Final term", "final", "finalExam", "finalPaper", "finalSolution", "finalRecords")...)

		if !in.ProjectReportUploaded {
			errs = append(errs, "Project Report is required for second submission (after final term). Please upload the project report.")
		}
		if !in.ReviewReportUploaded {
			errs = append(errs, "Course Review Report is required for second submission (after final term). Please upload the course review report.")
		}
		if !in.CourseResultUploaded {
			errs = append(errs, "Course Result is required for second submission (after final term). Please upload the course result.")
		}
	} else {
		errs = append(errs, examBlockErrors(content, "Midterm", "midterm", "midTerm", "midtermPaper", "midtermSolution", "midtermRecords")...)
	}

	errs = append(errs, assessmentErrors(content, "Assignment", "assignments",
		"assignmentPapers", "assignmentSolutions", "assignmentRecords",
		requiredAssignments, checkpoint)...)
	errs = append(errs, assessmentErrors(content, "Quiz", "quizzes",
		"quizPapers", "quizSolutions", "quizRecords",
		requiredQuizzes, checkpoint)...)

	return len(errs) == 0, errs
}

func stageName(checkpoint CheckpointKind) string {
	if checkpoint == CheckpointSecond {
		return "second submission (after final term)"
	}
	return "first submission (after midterm)"
}

// pluralLabel lower-cases an assessment label for the count message:
// "Assignment" -> "assignments", "Quiz" -> "quizzes".
func pluralLabel(label string) string {
	lower := strings.ToLower(label)
	if strings.HasSuffix(lower, "z") {
		return lower + "zes"
	}
	return lower + "s"
}

// present implements the validator's notion of a non-empty value: blank
// strings, empty containers, false, zero and null all count as absent.
func present(v interface{}) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(tv) != ""
	case bool:
		return tv
	case json.Number:
		f, err := tv.Float64()
		return err == nil && f != 0
	case float64:
		return tv != 0
	case int:
		return tv != 0
	case []interface{}:
		return len(tv) > 0
	case *jsondoc.Object:
		return tv.Len() > 0
	default:
		return true
	}
}

func sectionPresent(content *jsondoc.Object, keys ...string) bool {
	for _, k := range keys {
		if present(content.Val(k)) {
			return true
		}
	}
	return false
}

// attendanceEmbedded checks the content document for an attendance proof.
// The client stores uploads under attendanceFile with a file reference.
func attendanceEmbedded(content *jsondoc.Object) bool {
	if fileData, ok := jsondoc.AsObject(content.Val("attendanceFile")); ok {
		for _, k := range []string{"fileUrl", "fileName", "file", "name"} {
			if present(fileData.Val(k)) {
				return true
			}
		}
	}
	return sectionPresent(content, "attendance", "attendanceRecord", "attendanceRecords")
}

// examBlockErrors validates a midterm or final-term block: question paper,
// model solution and the three labeled sample records.
func examBlockErrors(content *jsondoc.Object, label, blockKey, blockAltKey, paperKey, solutionKey, recordsKey string) []string {
	var errs []string

	block, ok := jsondoc.AsObject(content.Val(blockKey))
	if !ok {
		block, _ = jsondoc.AsObject(content.Val(blockAltKey))
	}
	records, ok := jsondoc.AsObject(content.Val(recordsKey))
	if !ok && block != nil {
		records, _ = jsondoc.AsObject(block.Val("records"))
	}

	hasQuestion := present(content.Val(paperKey))
	hasSolution := present(content.Val(solutionKey))
	if block != nil {
		hasQuestion = hasQuestion || present(block.Val("questionPaper")) || present(block.Val("question_paper"))
		hasSolution = hasSolution || present(block.Val("modelSolution")) || present(block.Val("model_solution"))
	}

	if !hasQuestion {
		errs = append(errs, fmt.Sprintf("%s question paper is required.", label))
	}
	if !hasSolution {
		errs = append(errs, fmt.Sprintf("%s model solution is required.", label))
	}
	for _, sample := range []string{"best", "average", "worst"} {
		if records == nil || !present(records.Val(sample)) {
			errs = append(errs, fmt.Sprintf("%s %s solution record is required.", label, sample))
		}
	}
	return errs
}

// assessmentErrors validates the assignment or quiz list: a minimum count,
// and per entry a question set, a model solution and the best/average/worst
// sample records. Entry identifiers are client-authored and may drift from
// the payload map keys; resolvePayload applies the documented three-tier
// lookup (exact, normalized string, positional).
func assessmentErrors(content *jsondoc.Object, label, listKey, papersKey, solutionsKey, recordsKey string, required int, checkpoint CheckpointKind) []string {
	var errs []string

	entries, _ := jsondoc.AsArray(content.Val(listKey))
	papers, _ := jsondoc.AsObject(content.Val(papersKey))
	solutions, _ := jsondoc.AsObject(content.Val(solutionsKey))
	records, _ := jsondoc.AsObject(content.Val(recordsKey))

	if len(entries) < required {
		errs = append(errs, fmt.Sprintf(
			"For %s, at least %d %s are required. Found %d.",
			stageName(checkpoint), required, pluralLabel(label), len(entries)))
		return errs
	}

	for i, raw := range entries[:required] {
		entry, _ := jsondoc.AsObject(raw)
		id := entryID(entry)
		name := entryName(entry, label, id)

		paper, _ := resolvePayload(papers, id, i)
		solution, _ := resolvePayload(solutions, id, i)
		sampleSet, _ := resolvePayload(records, id, i)

		hasQuestion := entry != nil && (present(entry.Val("questionPaper")) || present(entry.Val("question_paper")))
		if paper != nil {
			if questions, ok := jsondoc.AsArray(paper.Val("questions")); ok && len(questions) > 0 {
				hasQuestion = true
			}
			hasQuestion = hasQuestion || present(paper.Val("questionPaper")) || present(paper.Val("question_paper"))
		}
		if !hasQuestion {
			errs = append(errs, fmt.Sprintf("%s '%s' (#%d) is missing question paper. Please add questions.", label, name, i+1))
		}

		hasSolution := entry != nil && (present(entry.Val("modelSolution")) || present(entry.Val("model_solution")))
		hasSolution = hasSolution || (solution != nil && solution.Len() > 0)
		if paper != nil {
			hasSolution = hasSolution || present(paper.Val("modelSolution")) || present(paper.Val("model_solution"))
		}
		if !hasSolution {
			errs = append(errs, fmt.Sprintf("%s '%s' (#%d) is missing model solution. Please add solution content.", label, name, i+1))
		}

		var missing []string
		for _, sample := range []string{"best", "average", "worst"} {
			if sampleSet == nil || !present(sampleSet.Val(sample)) {
				missing = append(missing, sample)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Sprintf("%s '%s' (#%d) is missing required solution records: %s",
				label, name, i+1, strings.Join(missing, ", ")))
		}
	}
	return errs
}

func entryID(entry *jsondoc.Object) string {
	if entry == nil {
		return ""
	}
	v := entry.Val("id")
	switch tv := v.(type) {
	case string:
		return tv
	case json.Number:
		return tv.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", tv)
	}
}

func entryName(entry *jsondoc.Object, label, id string) string {
	if entry != nil {
		if name, ok := entry.Val("name").(string); ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	return fmt.Sprintf("%s %s", label, id)
}

// resolvePayload finds the payload for the index-th declared entry. Lookup
// order, first match wins: exact identifier key, trimmed string-compared key,
// then positional (the Nth list entry maps to the Nth map key in insertion
// order). The positional tier is a deliberate tolerance for client-authored
// identifier drift, not a bug.
func resolvePayload(payloads *jsondoc.Object, id string, index int) (*jsondoc.Object, bool) {
	if payloads == nil || payloads.Len() == 0 {
		return nil, false
	}

	if id != "" {
		if v, ok := payloads.Get(id); ok {
			obj, _ := jsondoc.AsObject(v)
			return obj, true
		}
		want := strings.TrimSpace(id)
		for _, key := range payloads.Keys() {
			if strings.TrimSpace(key) == want {
				obj, _ := jsondoc.AsObject(payloads.Val(key))
				return obj, true
			}
		}
	}

	if index >= 0 && index < payloads.Len() {
		_, v := payloads.At(index)
		obj, _ := jsondoc.AsObject(v)
		return obj, true
	}
	return nil, false
}
