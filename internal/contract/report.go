package contract

import "github.com/alexanderramin/coursegate/internal/app"

type CourseRequest = app.CourseRequest

type ItemReport = app.ItemReport

type ModuleReport = app.ModuleReport

type CourseReport = app.CourseReport

type GateResponse = app.GateResponse
