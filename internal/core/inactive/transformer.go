package inactive

import (
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

// FromEmployee は有効な社員から履歴スナップショットを作成します。ID と無効化日時は呼び出し側が設定します。
var FromEmployee transform.Transformer[*employee.Employee, *InactiveEmployee] = transform.Func[*employee.Employee, *InactiveEmployee](
	func(emp *employee.Employee) (*InactiveEmployee, error) {
		if emp == nil {
			return nil, transform.Missing("employee")
		}
		if emp.ID == "" {
			return nil, transform.Missing("employee.id")
		}
		return &InactiveEmployee{
			OriginalEmployeeID: emp.ID,
			FirstName:          emp.FirstName,
			LastName:           emp.LastName,
			Email:              emp.Email,
			Department:         emp.Department,
		}, nil
	},
)

// EntityToResponse は InactiveEmployee を Response に変換します。
var EntityToResponse transform.Transformer[*InactiveEmployee, Response] = transform.Func[*InactiveEmployee, Response](
	func(e *InactiveEmployee) (Response, error) {
		if e == nil {
			return Response{}, transform.Missing("inactiveEmployee")
		}
		return Response{
			ID:                    e.ID,
			OriginalEmployeeID:    e.OriginalEmployeeID,
			FirstName:             e.FirstName,
			LastName:              e.LastName,
			Email:                 e.Email,
			Department:            e.Department,
			ReplacementEmployeeID: e.ReplacementEmployeeID,
			ReassignedCustomers:   e.ReassignedCustomers,
			ReassignedNotes:       e.ReassignedNotes,
			DeactivatedAt:         e.DeactivatedAt,
		}, nil
	},
)
