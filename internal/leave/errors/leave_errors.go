package leaveerrors

import (
	"net/http"

	"go-leavechat/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in the system",
		http.StatusNotFound,
	)
	ErrDateUnparseable = apperror.New(
		apperror.CodeInvalidInput,
		"could not understand the dates, please specify them clearly",
		http.StatusBadRequest,
	)
	ErrSpanTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"requested leave span exceeds the maximum consecutive days",
		http.StatusBadRequest,
	)
	ErrOverlapDetected = apperror.New(
		apperror.CodeConflict,
		"approved leave already exists for these dates",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrNoPendingConfirmation = apperror.New(
		apperror.CodeInvalidState,
		"no pending leave request found, please create a new one first",
		http.StatusNotFound,
	)
	ErrPastLeaveCancellation = apperror.New(
		apperror.CodeInvalidInput,
		"only future leaves can be cancelled",
		http.StatusBadRequest,
	)
	ErrNoLeavesFoundInRange = apperror.New(
		apperror.CodeNotFound,
		"no approved leaves found in the given range",
		http.StatusNotFound,
	)
	ErrStorageFailure = apperror.New(
		apperror.CodeStorageFailure,
		"storage operation failed",
		http.StatusServiceUnavailable,
	)
)
