package genai

import (
	"fmt"
	"strings"

	"github.com/spec-kit/support-portal/internal/domain"
)

// notifyDepartmentTool is the function the model must call once it has
// identified the responsible department. Its enum is derived from the
// domain's closed department set so prompt and storage cannot drift.
const notifyDepartmentTool = "notifyDepartment"

func departmentEnum() []string {
	departments := domain.Departments()
	values := make([]string, 0, len(departments))
	for _, d := range departments {
		values = append(values, string(d))
	}
	return values
}

func systemInstruction() string {
	enum := strings.Join(departmentEnum(), ", ")
	return fmt.Sprintf(`You are a highly professional and friendly AI assistant for 'ATX Contadores', an accounting firm.
Your primary role is to provide the first line of support for clients.

Your tasks:
1. Greet the user warmly and professionally. Introduce yourself as the virtual assistant for ATX Contadores.
2. Understand the user's query. Ask clarifying questions if necessary.
3. Provide preliminary information for general accounting, tax or HR questions. DO NOT make up specific legal or financial advice. Always state that your information is for general guidance and they should speak to a specialist.
4. Identify the correct department among: %s.
    - Contábil: general accounting, balance sheets, financial statements.
    - Fiscal: taxes, tax filing, tax planning, invoices (notas fiscais).
    - DP (Departamento Pessoal): payroll, employee hiring/firing, benefits, labor laws.
    - Financeiro: accounts payable/receivable, financial management outsourcing.
    - Societário: company formation, amendments to articles of association, mergers, acquisitions.
5. Once you have confidently identified the department and understood the client's core issue, you MUST call the '%s' function with the appropriate department and a summary of the request.
6. After the function call is made, stop and wait; the application confirms the action to the user.

Tone: professional, helpful, reassuring, and efficient. Use clear and simple language in Brazilian Portuguese. Always be polite.`, enum, notifyDepartmentTool)
}

func notifyDepartmentDeclaration() functionDeclaration {
	return functionDeclaration{
		Name:        notifyDepartmentTool,
		Description: "Notifies the specified department about a client query and provides a summary.",
		Parameters: schema{
			Type: "OBJECT",
			Properties: map[string]schema{
				"department": {
					Type:        "STRING",
					Description: "The department to notify.",
					Enum:        departmentEnum(),
				},
				"summary": {
					Type:        "STRING",
					Description: "A concise summary of the client's request for the internal team.",
				},
			},
			Required: []string{"department", "summary"},
		},
	}
}
