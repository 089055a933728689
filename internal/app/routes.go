package app

import "github.com/vango-dev/navcore/pkg/router"

// View identifiers of the console application.
const (
	ViewHome          = "HomePage"
	ViewUserLogin     = "UserLoginPage"
	ViewUserRegister  = "UserRegisterPage"
	ViewUserManage    = "UserManagePage"
	ViewAppGeneration = "AppGenerationPage"
	ViewAppManage     = "AppManagePage"
	ViewAppEdit       = "AppEditPage"
)

// Route metadata understood by the access guard.
const (
	MetaAccess  = "access"
	AccessAdmin = "admin"
)

// LoginPath is where the access guard sends unauthorized users.
const LoginPath = "/user/login"

// Routes returns the built-in route table definitions, in priority order.
func Routes() []router.Definition {
	admin := func() map[string]string { return map[string]string{MetaAccess: AccessAdmin} }
	return []router.Definition{
		{Path: "/", ViewID: ViewHome, Name: "home"},
		{Path: LoginPath, ViewID: ViewUserLogin, Name: "userLogin"},
		{Path: "/user/register", ViewID: ViewUserRegister, Name: "userRegister"},
		{Path: "/admin/userManage", ViewID: ViewUserManage, Name: "userManage", Meta: admin()},
		{Path: "/app/generate/:appId", ViewID: ViewAppGeneration, Name: "appGenerate"},
		{Path: "/admin/appManage", ViewID: ViewAppManage, Name: "appManage", Meta: admin()},
		{Path: "/app/edit/:appId", ViewID: ViewAppEdit, Name: "appEdit"},
	}
}
