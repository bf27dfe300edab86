package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIS Mentoria API",
        "description": "Authentication and student registration for the mentoring platform",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token validation and session identity"},
        {"name": "Alunos", "description": "Student self registration"},
        {"name": "Users", "description": "Administrative user management"},
        {"name": "Health", "description": "Probes and metrics"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Rejected credentials", "schema": {"$ref": "#/definitions/Envelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/cadastrarUsuario": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UserResponse"}},
                    "400": {"description": "Invalid payload, duplicate login or unknown group", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/validar": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Validate token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"token": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Valid", "schema": {"$ref": "#/definitions/ValidateTokenResponse"}},
                    "400": {"description": "Token missing", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid or expired", "schema": {"$ref": "#/definitions/ValidateTokenResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "User gone", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/auth/teste": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Auth module liveness",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/alterar-senha": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change own password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Wrong current password", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/personificar/{id}": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Impersonate aluno",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Aluno not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/personificar/encerrar": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Stop impersonation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Not impersonating", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/alunos": {
            "get": {
                "tags": ["Users"],
                "summary": "List alunos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "busca", "in": "query", "type": "string"},
                    {"name": "situacao", "in": "query", "type": "string", "enum": ["ativo", "inativo"]},
                    {"name": "pagina", "in": "query", "type": "integer"},
                    {"name": "limite", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/alunos/exportar": {
            "get": {
                "tags": ["Users"],
                "summary": "Export alunos",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "formato", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "busca", "in": "query", "type": "string"},
                    {"name": "situacao", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/alunos/{id}": {
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate aluno",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/usuarios/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "User summary",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/usuarios/{id}/situacao": {
            "patch": {
                "tags": ["Users"],
                "summary": "Toggle user situacao",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"situacao": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/metricas": {
            "get": {
                "tags": ["Health"],
                "summary": "Auth metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/alunos": {
            "post": {
                "tags": ["Alunos"],
                "summary": "Register aluno",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAlunoRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid payload or duplicate email/CPF", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "sucesso": {"type": "boolean"},
                "mensagem": {"type": "string"},
                "codigo": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["login", "senha"],
            "properties": {
                "login": {"type": "string", "minLength": 3, "maxLength": 50},
                "senha": {"type": "string", "minLength": 6},
                "grupo": {"type": "string", "enum": ["aluno", "administrador"]}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["nome", "login", "senha", "grupo"],
            "properties": {
                "nome": {"type": "string", "minLength": 2, "maxLength": 100},
                "login": {"type": "string", "minLength": 3, "maxLength": 50},
                "senha": {"type": "string", "minLength": 6},
                "grupo": {"type": "string"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["senhaAtual", "novaSenha"],
            "properties": {
                "senhaAtual": {"type": "string"},
                "novaSenha": {"type": "string", "minLength": 6}
            }
        },
        "CreateAlunoRequest": {
            "type": "object",
            "required": ["nome", "email", "cpf"],
            "properties": {
                "nome": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "cpf": {"type": "string", "example": "000.000.000-00"},
                "senha": {"type": "string"},
                "telefone": {"type": "string"},
                "cep": {"type": "string"}
            }
        },
        "Group": {
            "type": "object",
            "properties": {
                "idgrupo": {"type": "integer"},
                "nome": {"type": "string"},
                "descricao": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "idusuario": {"type": "integer"},
                "nome": {"type": "string"},
                "login": {"type": "string"},
                "cpf": {"type": "string"},
                "situacao": {"type": "boolean"},
                "ultimo_acesso": {"type": "string", "format": "date-time"},
                "grupo": {"$ref": "#/definitions/Group"}
            }
        },
        "UserResponse": {
            "type": "object",
            "properties": {
                "sucesso": {"type": "boolean"},
                "mensagem": {"type": "string"},
                "usuario": {"$ref": "#/definitions/User"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "sucesso": {"type": "boolean"},
                "mensagem": {"type": "string"},
                "token": {"type": "string"},
                "usuario": {"$ref": "#/definitions/User"},
                "grupo": {"type": "string"}
            }
        },
        "ValidateTokenResponse": {
            "type": "object",
            "properties": {
                "sucesso": {"type": "boolean"},
                "valido": {"type": "boolean"},
                "mensagem": {"type": "string"},
                "usuario": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
