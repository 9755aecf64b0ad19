package handler

import (
	"errors"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	errorDomain            = "crm"
	reasonWorkflowStepFail = "WORKFLOW_STEP_FAILED"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch apiresponse.Classify(err) {
	case apiresponse.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apiresponse.KindInvalid:
		return withBadRequest(status.New(codes.InvalidArgument, err.Error()), validation.FieldsOf(err))
	case apiresponse.KindAlreadyExists:
		return status.Error(codes.AlreadyExists, err.Error())
	case apiresponse.KindReferenced:
		return status.Error(codes.FailedPrecondition, err.Error())
	case apiresponse.KindWorkflowFailed:
		return workflowStatus(err)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func withBadRequest(st *status.Status, fields []validation.FieldError) error {
	if len(fields) == 0 {
		return st.Err()
	}
	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(fields))
	for _, f := range fields {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Message,
		})
	}
	detailed, err := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func workflowStatus(err error) error {
	st := status.New(codes.Aborted, err.Error())
	var stepErr *orchestrator.StepError
	if !errors.As(err, &stepErr) {
		return st.Err()
	}
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reasonWorkflowStepFail,
		Domain: errorDomain,
		Metadata: map[string]string{
			"workflow": stepErr.Workflow,
			"step":     stepErr.Step,
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}
