// Package mocks provides shared test doubles for the service and store
// interfaces.
//
// Two styles live here. Hand-written doubles with function fields
// (MockJWTService, MockPasswordVerifier) suit tests that only need to steer a
// return value. testify/mock doubles (MockSetStore, MockPracticeService) suit
// tests that assert on calls or inject failures into one method while the
// rest of the flow runs.
//
//	jwt := mocks.NewMockJWTService()
//	token, _ := jwt.GenerateToken(ctx, userID)
//	claims, _ := jwt.ValidateToken(ctx, token) // claims.UserID == userID
package mocks
