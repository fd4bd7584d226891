package app

import "github.com/ayoisaiah/lift/internal/apperr"

var (
	errInvalidExerciseSpec = &apperr.Error{
		Message: "invalid exercise %q, expected Name:SETSxREPS@WEIGHT",
	}
	errInvalidCommand = &apperr.Error{
		Message: "%s",
	}
	errNoExercises = &apperr.Error{
		Message: "add at least one exercise with --exercise or start from a plan with --plan",
	}
	errSaveWorkout = &apperr.Error{
		Message: "unable to save the workout, type finish to try again",
	}
	errFinishCmd = &apperr.Error{
		Message: "the finish command failed",
	}
	errRecordIDRequired = &apperr.Error{
		Message: "please provide the id of a workout",
	}
	errPlanFileRequired = &apperr.Error{
		Message: "please provide the path to a plan file",
	}
	errImportFileRequired = &apperr.Error{
		Message: "please provide the path to an exported history file",
	}
	errInvalidFormat = &apperr.Error{
		Message: "unsupported export format %q, use json or csv",
	}
	errNothingToEdit = &apperr.Error{
		Message: "nothing to change, use --set-name, --notes or --rating",
	}
)
