package entity

// Renderer draws entities. Clear starts a frame and Present finishes it.
type Renderer interface {
	RenderAsteroid(asteroid *Asteroid)
	RenderSpaceship(ship *Spaceship)
	Clear()
	Present()
}
